// Package cli implements portfolio-cli, a terminal client that signs in to
// the portfolio server and uploads one file through the upload relay.
//
// Typical flow: prompt for the email (unless configured) and the password
// without echo, log in so the cookie jar holds the session, send the file,
// and draw the transfer and storage progress on a single line until the
// server reports the public URL.
package cli
