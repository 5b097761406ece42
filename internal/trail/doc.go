// Package trail defines the value types shared between the data acquisition
// collaborators and the matching engine: scraped trail records, raw
// OpenStreetMap piste features, and built catalog entries.
//
// Everything in this package is a plain immutable value. Records are
// constructed per scrape cycle by the report client, features per catalog
// refresh by the overpass client, and catalog entries once per build by the
// match package.
package trail
