// Command portfolio runs the site and its maintenance tasks.
package main

func main() {
	Execute()
}
