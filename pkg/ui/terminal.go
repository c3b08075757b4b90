package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Banner printed at startup
const Banner = `========================================
Bluesky Media Downloader
========================================`

// Color functions for terminal output
var (
	Cyan   = colorize("\033[36m%s\033[0m")
	Yellow = colorize("\033[33m%s\033[0m")
	Red    = colorize("\033[31m%s\033[0m")
	Green  = colorize("\033[32m%s\033[0m")
)

// colorize returns a function that wraps text with ANSI color codes
func colorize(colorString string) func(string) string {
	return func(text string) string {
		return fmt.Sprintf(colorString, text)
	}
}

// PrintBanner prints the startup banner
func PrintBanner() {
	fmt.Println(Cyan(Banner))
}

// PrintError prints an error message in red
func PrintError(msg string, args ...interface{}) {
	if len(args) > 0 {
		fmt.Println(Red(msg + ": " + fmt.Sprintf("%v", args[0])))
	} else {
		fmt.Println(Red(msg))
	}
}

// PrintSuccess prints a success message in green
func PrintSuccess(msg string) {
	fmt.Println(Green(msg))
}

// PrintInfo prints a labeled info line
func PrintInfo(label string, value string) {
	fmt.Printf("%s: %s\n", Cyan(label), Yellow(value))
}

// PrintWarning prints a warning message in yellow
func PrintWarning(msg string) {
	fmt.Println(Yellow(msg))
}

// PrintStatus overwrites the current terminal line with a status message
func PrintStatus(msg string) {
	fmt.Printf("\r%s\r%s", strings.Repeat(" ", 80), msg)
}

// Confirm asks a yes/no question on the given reader and reports
// whether the answer was affirmative. Only "y" and "yes" count.
func Confirm(r io.Reader, question string) bool {
	fmt.Printf("%s (y/n) ", question)
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
	return answer == "y" || answer == "yes"
}

// ConfirmStdin asks a yes/no question on standard input
func ConfirmStdin(question string) bool {
	return Confirm(os.Stdin, question)
}
