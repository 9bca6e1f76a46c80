// Package binaryname implements the module-prefix extraction rules shared
// by OutputContainerGroup, Workspace and ContainerClassLoader:
// recognizing a leading "<module-name>/" token on an otherwise dotted or
// slash-separated name and splitting it from the remainder.
package binaryname

import "strings"

// TryExtractModulePrefix looks for a leading "<module-name>/<rest>" token
// in name. It returns the module name, the remainder, and true if name
// has that shape and the module name is a syntactically valid module
// identifier (dot-separated Java identifiers, e.g. "java.base" or
// "my.module"); otherwise it returns "", name, false.
//
// An empty remainder is legal ("my.module/" splits to ("my.module", "", true)).
func TryExtractModulePrefix(name string) (moduleName, remainder string, ok bool) {
	idx := strings.IndexByte(name, '/')
	if idx < 0 {
		return "", name, false
	}
	candidate := name[:idx]
	if !isValidModuleName(candidate) {
		return "", name, false
	}
	return candidate, name[idx+1:], true
}

// isValidModuleName reports whether s is a dot-separated sequence of Java
// identifiers, e.g. "java.base", "com.example.mymodule".
func isValidModuleName(s string) bool {
	if s == "" {
		return false
	}
	for _, segment := range strings.Split(s, ".") {
		if !isValidJavaIdentifier(segment) {
			return false
		}
	}
	return true
}

func isValidJavaIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_', r == '$':
			// always valid, first char or not
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
