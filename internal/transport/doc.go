// Package transport builds the HTTP clients used to talk to the wiki and
// to Google.
//
// Clients keep cookies (MediaWiki sessions are cookie based), send a
// descriptive User-Agent, and can route every connection through a SOCKS5
// proxy for wikis that are only reachable from inside a private network.
package transport
