// Package qstash provides a Go client for Upstash QStash, a hosted HTTP
// message broker. The client is a typed wrapper around the QStash REST API:
// it builds authenticated requests for publishing messages and managing
// queues, schedules, URL groups, signing keys, events, and the dead letter
// queue, and decodes the JSON responses into Go values. Durability, delivery
// retries, and scheduling all happen inside the remote service.
//
// # Quick Start
//
// Publish a message:
//
//	client, err := qstash.NewClient(os.Getenv("QSTASH_TOKEN"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	msgs, err := client.PublishJSON(ctx, "https://example.com/hook",
//	    map[string]string{"hello": "world"},
//	    qstash.WithDelay(30*time.Second),
//	    qstash.WithRetries(3),
//	)
//
// Verify an incoming webhook delivery:
//
//	recv := &qstash.Receiver{
//	    CurrentSigningKey: os.Getenv("QSTASH_CURRENT_SIGNING_KEY"),
//	    NextSigningKey:    os.Getenv("QSTASH_NEXT_SIGNING_KEY"),
//	}
//	err := recv.Verify(qstash.VerifyOptions{
//	    Signature: r.Header.Get(qstash.SignatureHeader),
//	    Body:      body,
//	    URL:       "https://example.com/hook",
//	})
//
// A Client is safe for concurrent use; it holds only immutable configuration
// after construction. Pass a context to every call to control timeouts and
// cancellation.
package qstash
