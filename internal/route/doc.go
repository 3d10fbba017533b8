// Package route resolves a search query to the events-site page the scraper visits.
//
// Queries inside Mexico are routed to one of four fixed metro-area pages by latitude
// band, since the site ranks metro pages far better than coordinate searches there.
// Everything else uses the site's coordinate search.
package route
