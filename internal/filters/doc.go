// Package filters decodes the standard PDF stream filters.
//
// Every decoder takes the raw stream bytes and returns the decoded bytes:
//
//	out, err := filters.FlateDecode(data, filters.Params{"Predictor": 12, "Columns": 5})
//
// FlateDecode and LZWDecode undo PNG (10-15) and TIFF (2) predictors after
// decompression. LZWDecode honours EarlyChange. ASCIIHexDecode,
// ASCII85Decode and RunLengthDecode need no parameters. CCITTFaxDecode
// reads K, Columns, Rows and BlackIs1.
//
// Params holds a decode parameter dictionary with its values already
// converted to Go types (int, float64, bool, string).
package filters
