package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Confirm asks prompt until the answer is y, yes, n or no. End of input
// counts as no.
func Confirm(in io.Reader, out io.Writer, prompt string) bool {
	scanner := bufio.NewScanner(in)

	for {
		fmt.Fprintf(out, "%s [y/n]: ", prompt)

		if !scanner.Scan() {
			fmt.Fprintln(out)
			return false
		}

		switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
		case "y", "yes":
			return true
		case "n", "no":
			return false
		default:
			fmt.Fprintln(out, "Please answer y or n.")
		}
	}
}
