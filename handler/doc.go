// Package handler adapts typed request handlers to net/http and renders the
// gateway's JSON envelopes.
//
// Wrap binds the request body into R, validates it when R implements
// Validatable, calls the handler and renders the returned Response. Any
// failure goes to an ErrorHandler; NewErrorHandler builds one from a
// Translator that maps domain errors to HTTPError values.
//
// Success bodies look like
//
//	{"status":"success","message":"Login successful","data":{...},"timestamp":"..."}
//
// and error bodies like
//
//	{"status":"error","message":"Validation failed","code":400,
//	 "details":"One or more fields have validation errors",
//	 "fieldErrors":{"email":"Email is required"},"timestamp":"..."}
package handler
