// Package common provides shared helpers for tool implementations.
package common
