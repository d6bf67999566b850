// Package client is the transport to the registration server.
//
// # Overview
//
// Client describes every remote call the services make. HTTPClient implements
// it over net/http: each call reads the current Endpoint and bearer token from
// a Settings source, builds a deterministic URL (see BuildURL), sends JSON and
// decodes the response envelope
//
//	{"status": "success"|..., "detailed_status": ..., "message": ..., "data": ...}
//
// into domain models.
//
// # Error Handling
//
// Every failure is an *Error with a Kind:
//
//   - KindCommunication: no response (network, DNS, TLS, cancelled context).
//   - KindAPI / KindNotFound: non-2xx status. The message comes from a JSON
//     body, an HTML <title>, a canned text for well-known codes, or the
//     truncated raw body, in that order.
//   - KindServer: 2xx with status != "success", missing data, or a payload
//     that does not decode (the chain then holds a *DecodeError).
//   - KindMalformedResponse: 2xx body that is not an envelope at all.
//   - KindUnprocessable: a precondition failed before any request was sent.
//
// ErrUnavailable, ErrUnauthorized and ErrNotFound match with errors.Is.
//
// # Dates
//
// Timestamp accepts ISO-8601 with or without fractional seconds, or a bare
// YYYY-MM-DD (midnight UTC). Date is a calendar day sent as YYYY-MM-DD and
// held at local noon.
package client
