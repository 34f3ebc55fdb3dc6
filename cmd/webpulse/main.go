// Command webpulse analyzes a web page from several regions and prints the report.
package main

func main() {
	Execute()
}
