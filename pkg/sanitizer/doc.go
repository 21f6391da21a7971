// Package sanitizer normalizes free-text user input before validation and storage.
//
// All functions are idempotent - applying them multiple times produces the same
// result. Invalid input is handled gracefully by returning an empty string
// rather than an error.
//
// Normalization includes:
//   - Text (names, descriptions, comments): strip control characters, collapse
//     whitespace, trim leading/trailing spaces
//   - Emails: trim and lowercase
package sanitizer
