// Package format holds the on-disk enumerations shared by the document and
// region encoders.
package format
