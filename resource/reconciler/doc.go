// Package reconciler converges a single remote resource to its declared
// state.
//
// Steps
//
// A reconciliation is one pass:
//
//   1. Fetch current state
//
//      The resource is fetched from the provider. Not found is an expected
//      outcome and selects the branch; any other failure is terminal.
//
//   2. Converge
//
//      Declared absent and found: the resource is deleted.
//      Declared absent and not found: nothing to do.
//      Declared present: the resource is created. Create has create-or-update
//      semantics, so an existing resource is replaced with the full desired
//      configuration.
//
//   3. Wait for provisioning
//
//      After a create, the resource is polled at a fixed interval until the
//      provider reports it provisioned, up to a fixed number of attempts.
//
// At most one mutating call is issued per pass, and mutating calls are never
// retried. Re-invoking with the same desired state is the recovery mechanism
// for any failure: each pass is independently idempotent.
//
// Dry run
//
// With DryRun set, the reconciler fetches current state and reports what
// would change, without issuing create or delete calls and without waiting.
package reconciler
