// Package core runs imports and exports of shipping records as jobs.
//
// It sits between transports (HTTP handlers, the CLI) and the exchange
// package, and knows nothing about either side's formats.
//
// # Kind Registry
//
// Each entity kind is registered at init time using [Register], usually by
// importing internal/core/kinds. [Adapt] turns a typed exchange kind into a
// [Kind] whose Import and Export work on plain lines and writers:
//
//	core.Register(core.Adapt(exchange.Countries, 10))
//
// # Jobs
//
// [Service.Import] and [Service.Export] run synchronously; the Submit
// variants run in the background and return a job id whose progress is
// available from [Service.Job]. Every run writes a JobStatus row when it
// starts and stamps it with the end time and error message when it ends.
//
// A [KindLimiter] gives each kind a single slot, so two imports of the same
// kind never run against the store at the same time.
//
// # Error Handling
//
// Technical errors are mapped to user-facing messages with [MapError]. Each
// category has a code for support reference:
//
//   - IMP001-IMP003: Import format, parse and validation errors
//   - DB001-DB007: Store errors (duplicates, missing references, connectivity)
//   - JOB001-JOB004: Job scheduling, cancellation and timeouts
//   - KND001: Unknown kind
//   - FILE001-FILE004: File errors
package core
