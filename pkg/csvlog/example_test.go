package csvlog_test

import (
	"bytes"
	"fmt"
	"io"
	"log"

	"github.com/tracebus/canlog/pkg/csvlog"
	"github.com/tracebus/canlog/pkg/message"
)

// Example demonstrates writing a capture and reading it back.
func Example() {
	var buf bytes.Buffer

	w, err := csvlog.NewWriter(&buf, false)
	if err != nil {
		log.Fatal(err)
	}

	msgs := []message.Message{
		{Timestamp: 1483389946.197, ArbitrationID: 0xdadada, IsExtendedID: true, DLC: 6, Data: []byte("[42, 9]")},
		{Timestamp: 1483389946.212, ArbitrationID: 0x7ff, DLC: 2, Data: []byte{0x2a, 0x09}},
	}
	for i := range msgs {
		if err := w.Write(&msgs[i]); err != nil {
			log.Fatal(err)
		}
	}

	r := csvlog.NewReader(&buf)
	for {
		msg, err := r.ReadNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("id=0x%x extended=%t dlc=%d data=%x\n",
			msg.ArbitrationID, msg.IsExtendedID, msg.DLC, msg.Data)
	}

	// Output:
	// id=0xdadada extended=true dlc=6 data=5b34322c20395d
	// id=0x7ff extended=false dlc=2 data=2a09
}

// ExampleReader_OnStop shows deterministic resource release on exhaustion.
func ExampleReader_OnStop() {
	input := csvlog.Header() + "\n1.5,0x100,0,0,0,1,Kg==\n"

	r := csvlog.NewReader(bytes.NewReader([]byte(input)))
	r.OnStop(func() {
		fmt.Println("reader stopped")
	})

	for {
		msg, err := r.ReadNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("read 0x%x\n", msg.ArbitrationID)
	}

	// Output:
	// read 0x100
	// reader stopped
}
