// Command superblock runs superblock formation (trace selection and
// tail duplication) or feature extraction over a YAML-described
// function, in place of the host compiler's analysis front end.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
