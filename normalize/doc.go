// Package normalize converts loosely formatted listing text into canonical
// field values: cleaned text, UK postcodes, tenure, sale type, floor and land
// area, and asking price.
//
// Every function here is pure and total. Malformed, empty or hostile input
// degrades to the absent value of the field ("" or an invalid sql.Null*),
// never to an error or a panic, so callers can run the functions from any
// number of goroutines without coordination.
package normalize
