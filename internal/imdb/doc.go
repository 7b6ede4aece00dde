// Package imdb knows the movie database's page addresses and the CSS
// selectors for each known layout generation of its search, title, and
// review pages. It holds no state and performs no I/O.
package imdb
