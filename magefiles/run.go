//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Runs the engine with the sample project.
func (Run) Engine() error {
	fmt.Println("Run engine...")
	if _, err := executeCmd("go", withArgs("run", "main.go", "-project", "sample/sample.ember"), withStream()); err != nil {
		return err
	}
	return nil
}

// Runs the engine without a window, useful on build machines.
func (Run) Headless() error {
	if _, err := executeCmd("go", withArgs("run", "main.go", "-project", "sample/sample.ember", "-headless"), withStream()); err != nil {
		return err
	}
	return nil
}
