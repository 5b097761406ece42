// Package report scrapes the resort's detailed conditions page.
//
// The page is server-rendered HTML: summary blocs with open/total counts
// for lifts, trails, and glades, area sections ("versants") listing each
// trail with its number, difficulty icon, and day/night status, snow
// accumulation figures, and an update stamp. The parser walks the
// document with golang.org/x/net/html and degrades gracefully: a missing
// bloc produces an empty section, never an error, because the page layout
// shifts between seasons.
package report
