// Package textutil converts free-form names into strings that are safe to use
// as folder names and file name tokens.
package textutil
