package discovery

import (
	"bufio"
	"os"
	"regexp"
	"strings"
)

// generatedPattern matches common "do not edit" headers Python code
// generators (protoc, grpc_tools, stub generators) emit as a leading
// comment.
var generatedPattern = regexp.MustCompile(`(?i)^#.*(code generated|do not edit|auto-?generated)`)

// FileClass categorizes a discovered Python file for analysis purposes.
type FileClass int

const (
	ClassSource FileClass = iota
	ClassTest
	ClassGenerated
	ClassExcluded
)

func (c FileClass) String() string {
	switch c {
	case ClassSource:
		return "source"
	case ClassTest:
		return "test"
	case ClassGenerated:
		return "generated"
	case ClassExcluded:
		return "excluded"
	default:
		return "unknown"
	}
}

// classifyPythonFile classifies a .py file by its filename. Test files
// match pytest/unittest discovery conventions: test_*.py or *_test.py.
// __init__.py is ordinary package source despite its leading underscore;
// other underscore- or dot-prefixed names (_internal.py, .hidden.py) are
// excluded.
func classifyPythonFile(name string) FileClass {
	base := strings.TrimSuffix(name, ".py")
	if strings.HasPrefix(base, "test_") || strings.HasSuffix(base, "_test") {
		return ClassTest
	}
	if name == "__init__.py" {
		return ClassSource
	}
	if strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".") {
		return ClassExcluded
	}
	return ClassSource
}

// isGeneratedFile checks whether a Python file's leading comment lines
// carry a generator's "do not edit" marker (protoc/grpc_tools stubs commonly
// do, e.g. `# Generated by the protocol buffer compiler.  DO NOT EDIT!`).
// Scanning stops at the first non-comment, non-blank line.
func isGeneratedFile(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if !strings.HasPrefix(trimmed, "#") {
			return false, nil
		}
		if generatedPattern.MatchString(trimmed) {
			return true, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return false, err
	}
	return false, nil
}
