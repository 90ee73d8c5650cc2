// Package main provides the entry point of the movie catalog identity service.
// It registers and authenticates accounts, issues bearer tokens and enforces
// role based permissions on the admin API. Storage is gorm on MySQL, PostgreSQL
// or SQLite; the HTTP surface is a fiber application.
package main
