// Package overpass fetches ski trail features from the Overpass API.
//
// The client queries ways tagged with piste metadata around a configured
// center point, retries transient failures with a fixed delay, and parses
// the response into trail.Feature values with precomputed geometry center
// and bounds. All geometric computation for the system happens here; the
// matching engine only passes geometry through.
package overpass
