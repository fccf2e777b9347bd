// Package dataset loads patient-evaluation CSV files into observation
// tables. Clinical exports rarely agree on a text encoding, so the loader
// walks an ordered list of encoding candidates (UTF-8, ISO 8859-1,
// Windows-1252) and falls back to byte-level charset detection as a last
// resort. Any failure here is fatal to the run; everything downstream
// degrades per variable instead.
package dataset
