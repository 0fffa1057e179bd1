// Package google handles OAuth2 credentials for the Google Calendar API.
//
// Credential acquisition is deliberately separated from the calendar gateway:
// the gateway receives a TokenProvider and never reaches for global state.
// The default FileTokenProvider stores one token file per account under the
// user cache directory.
package google
