// Package corpusdb loads training sentences from Postgres as an alternative
// to flat corpus files, for setups where the corpus is curated in a database
// rather than exported to disk.
package corpusdb
