// Package ledger is a client driver for a managed append-only journal
// database speaking PartiQL over a session-oriented command protocol.
//
// Application code executes statements inside ACID transactions through
// Driver.Execute; the driver owns session lifecycle, optimistic-concurrency
// retries, backoff and concurrent transaction admission:
//
//	db, err := ledger.New(ctx,
//		ledger.WithLedgerName("people"),
//		ledger.WithTransport(transport),
//	)
//	if err != nil {
//		// handle error
//	}
//	defer db.Close(ctx)
//
//	v, err := db.Execute(ctx, func(ctx context.Context, txn ledger.Txn) (interface{}, error) {
//		res, err := txn.Execute(ctx, "SELECT * FROM people WHERE age = ?", 42)
//		if err != nil {
//			return nil, err
//		}
//		var out [][]byte
//		for res.HasNext() {
//			doc, err := res.Next(ctx)
//			if err != nil {
//				return nil, err
//			}
//			out = append(out, doc)
//		}
//		return out, nil
//	})
//
// The function passed to Execute may run more than once; it must be
// idempotent with respect to non-transactional side effects.
package ledger
