// Package compiler drives the front end over whole source files and writes
// the resulting IR artifacts.
//
// Pipeline: source → lexer → parser (type checking + backend calls) → IR text
package compiler
