// Package migrations manages schema migrations for the core project and
// its apps.
//
// The core and every internal app share one migrations directory and one
// version table. Each external app owns its migrations and its own
// version table, named after the app.
package migrations
