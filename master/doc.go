// Package master implements the controlling station (master) side of IEC 60870-5-104.
//
// A Session connects to a controlled station (outstation) over a transport, starts data transfer
// with STARTDT, keeps the link supervised with the t1, t2 and t3 timers, and delivers decoded
// information objects and lifecycle events to a Sink.
//
// Example:
//
//	cfg, err := master.NewConfig("192.168.1.10", master.DefaultPort,
//	    master.WithCommonAddress(1),
//	    master.WithT3Timeout(20*time.Second),
//	)
//	if err != nil {
//	    // handle error
//	}
//
//	session, err := master.NewSession(cfg, mySink)
//	if err != nil {
//	    // handle error
//	}
//	defer session.Close()
//
//	if err := session.Open(true); err != nil {
//	    // handle error, e.g. iec104.ErrStartTimeout
//	}
//
//	_ = session.SolicitGeneralInterrogation()
//	_ = session.SendCommand(asdu.SingleCommand(5000, true, false))
//
// The session never reconnects by itself. When Sink.OnDisconnected is called the application may call
// Open again; a TLS transport is selected with WithTransport(transport.NewTLS(...)).
package master
