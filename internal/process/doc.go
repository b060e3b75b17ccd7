// Package process manages external converter subprocesses as a group, so a
// timeout kills pandoc together with the TeX engine it launched.
package process
