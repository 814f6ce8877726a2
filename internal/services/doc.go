// Package services holds the business rules of each domain. Services
// resolve their databases per call through database.Resolver, so a domain
// that is down fails its own requests and nothing else.
package services
