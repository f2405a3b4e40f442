// Package models contains the GORM persistence models for packages,
// reservations and notices. Domain entities carry no ORM tags; each model
// converts to and from its entity with ToDomain / FromDomain.
package models
