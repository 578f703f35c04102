// Package cli implements the appkit command line.
//
// Commands:
//
//	appkit version
//	appkit app list [-o text|json|yaml]
//	appkit app validate <name> [--json]
//	appkit migrate core -m <message>
//	appkit migrate app <name> <makemigrations|upgrade|downgrade|preview>
//	appkit migrate preview|upgrade [-r <revision>]
//	appkit migrate downgrade -r <revision>
//	appkit migrate all
//
// Listing and validation never run app entrypoints.
package cli
