// Package listing maintains the catalog that links Guesty listings to local
// properties. Every other sync flow resolves listing ids through this catalog
// before touching reservations or calendars.
package listing
