package main

import "strings"

// javaClassName converts a JFR internal class name to its binary name:
// "java/util/HashMap$Node" → "java.util.HashMap$Node".
func javaClassName(internal string) string {
	return strings.ReplaceAll(internal, "/", ".")
}

// frameName renders a frame as "Type::method".
func frameName(f Frame) string {
	return f.Type + "::" + f.Method
}
