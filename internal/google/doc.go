// Package google holds the OAuth2 configuration and token plumbing shared by
// the Calendar and Gmail clients. Tokens are persisted as JSON under the user
// cache directory and refreshed transparently on expiry; everything else in
// the codebase receives credentials through the TokenProvider interface and
// never touches token storage directly.
package google
