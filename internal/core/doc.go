// Package core provides the business logic of the B2B bulk order service.
//
// The package holds all domain logic independent of any transport. It can
// be used by web handlers, CLI tools, or tests without modification; storage
// and remote systems are reached through small interfaces ([Enricher],
// [QuoteStore], [TokenIssuer], [ReportArchiver], [Notifier]) and the
// database.Store query set.
//
// # Bulk Upload
//
// A bulk upload is a session that walks init → loading → end:
//
//  1. Client calls [Service.OpenSession] with the shopper's [Account]
//  2. [Service.StartUpload] verifies the file ([VerifyFile]), parses it
//     ([ParseCSV]) and enriches the rows in the background
//  3. [Service.WaitSession] or [Service.Session] reports the outcome
//  4. [Service.ConfirmUpload] classifies the enriched rows ([Classify]) and
//     hands the accepted ones to a registered [ListTarget]
//
// Choosing another file while one is loading supersedes it: the older
// enrichment is cancelled and its response, should it still arrive, is
// dropped. A failed enrichment returns the session to init.
//
// # Classification
//
// Each enriched row lands in exactly one of six buckets, checked in order:
// not purchasable, out of stock, insufficient stock, below minimum, above
// maximum, accepted. Numeric fields arrive as strings or numbers and are
// coerced with [ToNumber] and [ParseIntPrefix].
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - FILE001-FILE004: File errors (size, structure, missing)
//   - UPL001-UPL007: Upload session errors
//   - LST001-LST004: List target and shopping list errors
//   - QTE, MSQ, ENR: Quote, masquerade and enrichment errors
//
// # Tips
//
// Short-lived notifications go through a [Notifier]. The process owns one
// [TipCenter]; [Service.StartSweeper] hides non-closable tips after their
// auto-hide delay.
package core
