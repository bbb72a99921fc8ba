package utils

import (
	"fmt"
)

// NamedCloser is a release step identified by Name in close logs.
type NamedCloser struct {
	Name  string
	Close func() error
}

type NamedClosers []NamedCloser

type CloseOpt struct {
	ReverseOrder bool
	Output       func(...interface{})
	ErrorOutput  func(...interface{})
}

// Close runs every closer even if some of them fail, and returns the first error.
func (closers NamedClosers) Close(opt *CloseOpt) error {
	if len(closers) == 0 {
		return nil
	}

	if opt == nil {
		opt = &CloseOpt{}
	}
	output := opt.Output
	if output == nil {
		output = func(...interface{}) {}
	}
	errorOutput := opt.ErrorOutput
	if errorOutput == nil {
		errorOutput = func(...interface{}) {}
	}

	var first error
	closeOne := func(c *NamedCloser) {
		err := c.Close()
		if err != nil {
			errorOutput(fmt.Sprintf("Fail to close %s error=%s", c.Name, err))
			if first == nil {
				first = fmt.Errorf("close %s: %w", c.Name, err)
			}
		} else {
			output(fmt.Sprintf("Closed %s", c.Name))
		}
	}

	if opt.ReverseOrder {
		for i := len(closers) - 1; i >= 0; i-- {
			closeOne(&closers[i])
		}
	} else {
		for i := range closers {
			closeOne(&closers[i])
		}
	}
	return first
}
