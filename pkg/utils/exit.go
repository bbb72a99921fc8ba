package utils

import (
	"fmt"
	"os"
)

var exitFunc = os.Exit

func CheckErrorAndExit(err error, msg string) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", msg, err)
		exitFunc(1)
	}
}
