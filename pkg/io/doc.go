// Package io reads and writes the JSON documents badgekit exchanges with
// other tools.
//
// # Documents
//
// Three documents are supported:
//
//   - Configuration: the badge design ([badge.Configuration]), as written
//     by a template editor
//   - Print settings: physical size, DPI and bleed ([units.PrintSettings]),
//     usually stored next to the configuration
//   - Visitors: the dynamic data for one badge per visitor
//     ([badge.Visitor]), either a single object or an array
//
// A configuration looks like this:
//
//	{
//	  "layout": "portrait",
//	  "fields": {"showName": true, "showEventName": true},
//	  "photoPlacement": {"size": "medium", "shape": "circle"},
//	  "qrCode": {"enabled": true, "size": "small"},
//	  "backgroundColor": "#1e293b",
//	  "print": {"widthInches": 3.5, "heightInches": 2, "dpi": 300}
//	}
//
// Unknown fields are ignored so that documents written by newer editors
// still load. Missing fields take their defaults at render time.
//
// # Errors
//
// Malformed JSON yields an INVALID_FORMAT error and a missing file a
// FILE_NOT_FOUND error (see [errors.Code]). Values are validated with
// [badge.Configuration.Validate] after decoding.
//
// [errors.Code]: github.com/matzehuels/badgekit/pkg/errors.Code
package io
