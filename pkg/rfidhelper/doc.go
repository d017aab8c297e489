// Package rfidhelper provides an embeddable background poller for
// proximity-card readers such as the MFRC522 (RC522).
//
// A [Helper] owns a single polling worker. The worker is started lazily by
// the first [Helper.Activate], parked by [Helper.Deactivate] and stopped for
// good by [Helper.Terminate], which also releases the reader device.
//
// # Basic Usage
//
//	dev, err := rc522.Open(rc522.DefaultConfig(), logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	helper, err := rfidhelper.New(dev,
//	    rfidhelper.WithLogger(logger),
//	    rfidhelper.WithReporter(report.NewWriter(os.Stdout)),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	_ = helper.Activate()   // start polling
//	// ...
//	_ = helper.Deactivate() // returns once the worker is parked
//	_ = helper.Activate()   // resume
//	// ...
//	_ = helper.Terminate()  // stop the worker and release the device
//
// # Lifecycle States
//
// A Helper is in one of four states: [StateCreated], [StateActive],
// [StatePaused] or [StateTerminated]. [StateTerminated] is final; Activate
// returns [ErrTerminated] afterwards while Deactivate and Terminate are no-ops.
//
// # Blocking
//
// Deactivate blocks until the worker acknowledges that it left the polling
// phase, and Terminate blocks until the worker exits. Both cancel the
// context passed to ReaderDevice.WaitForTag; a device that ignores the
// context keeps the caller waiting until its next event (usually a card
// being presented).
//
// # Event Handling
//
// Implement [EventHandler] and pass it via [WithEventHandler] to observe
// state changes, reads and polling errors. Card and error events are called
// synchronously from the worker goroutine and should return quickly.
package rfidhelper
