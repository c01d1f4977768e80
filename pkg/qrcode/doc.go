// Package qrcode turns pairing payloads into scannable QR codes.
//
// The package is a thin wrapper around github.com/skip2/go-qrcode. An Encoder
// produces PNG bytes for HTTP delivery, DataURI wraps them for embedding in an
// <img> tag, and Terminal renders the same code with Unicode half blocks so a
// pairing payload can be scanned straight from a log stream.
//
// # Usage
//
//	enc := qrcode.NewEncoder(qrcode.WithSize(320))
//
//	png, err := enc.Encode(payload)
//	if err != nil {
//		// handle error
//	}
//	uri := qrcode.DataURI(png)
//
// # Error Handling
//
//   - ErrEmptyContent    – the payload was empty or whitespace.
//   - ErrGenerateQRCode  – the upstream library could not build the code.
package qrcode
