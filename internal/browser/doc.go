// Package browser provides the page-browsing capability used to search for
// and read movie records.
//
// A Session is an explicit handle owned by the caller and passed to the
// resolver and extractor; there is no package-level browser. HTTPSession is
// the production implementation and browsertest offers a canned-page double.
package browser
