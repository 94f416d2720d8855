// Package model implements the consignment workflow on top of the
// dataset: registering items, closing sales, running the live auction,
// importing item lists, and reconciling badges at the end of a show.
//
// Amounts travel through the model as decimals in the primary currency.
// Operations report their outcome as a result code rather than an error
// so that a caller can relay the code to the person at the desk; errors
// are reserved for broken persistence.
package model
