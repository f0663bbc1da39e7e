package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/rincewound/klemme/serial"
)

// feeder drives test traffic into the far end of a serial link (typically
// one side of a socat PTY pair) so the monitor has something to show.
func main() {
	mode := flag.String("mode", "send", "Mode: send, burst, or echo")
	device := flag.String("device", "/dev/ttyS0", "Serial device")
	baud := flag.Int("baud", 9600, "Baud rate")
	message := flag.String("message", "TEST", "Message to send")
	count := flag.Int("count", 10, "Number of messages")
	interval := flag.Duration("interval", 1*time.Second, "Interval between sends")
	flag.Parse()

	cfg := serial.PortConfig{
		Device:   *device,
		BaudRate: *baud,
		DataBits: 8,
		StopBits: 1,
		Parity:   "None",
	}

	switch *mode {
	case "send":
		sendLines(cfg, *message, *count, *interval)
	case "burst":
		sendBursts(cfg, *count, *interval)
	case "echo":
		echo(cfg)
	default:
		log.Fatal("Invalid mode. Use: send, burst, or echo")
	}
}

// sendLines writes numbered text lines, one per interval.
func sendLines(cfg serial.PortConfig, message string, count int, interval time.Duration) {
	ctx, err := serial.OpenContext(cfg)
	if err != nil {
		log.Fatalf("Failed to open port: %v", err)
	}
	defer ctx.Close()

	fmt.Printf("Sending on %s at %d baud\n", cfg.Device, cfg.BaudRate)
	fmt.Printf("Message: %s\n", message)
	fmt.Printf("Count: %d, Interval: %v\n\n", count, interval)

	for i := 0; i < count; i++ {
		msg := fmt.Sprintf("[%d] %s %s\r\n", i+1, message, time.Now().Format("15:04:05.000"))
		n, err := ctx.Port.Write([]byte(msg))
		if err != nil {
			log.Printf("Write error: %v", err)
			continue
		}
		fmt.Printf("Sent %d bytes: %s", n, msg)
		time.Sleep(interval)
	}
	fmt.Println("\nSend complete")
}

// sendBursts writes binary frames carrying a sequence counter, a millisecond
// timestamp and a float sample, all little endian. Useful for checking the
// hex view and the byte decoder against known values.
func sendBursts(cfg serial.PortConfig, count int, interval time.Duration) {
	ctx, err := serial.OpenContext(cfg)
	if err != nil {
		log.Fatalf("Failed to open port: %v", err)
	}
	defer ctx.Close()

	fmt.Printf("Bursting on %s at %d baud\n", cfg.Device, cfg.BaudRate)
	fmt.Printf("Frame: AA 55 | u16 seq | u32 millis | f32 sample\n\n")

	for i := 0; i < count; i++ {
		frame := burstFrame(i)
		n, err := ctx.Port.Write(frame)
		if err != nil {
			log.Printf("Write error: %v", err)
			continue
		}
		fmt.Printf("Sent frame %d (%d bytes): % X\n", i+1, n, frame)
		time.Sleep(interval)
	}
	fmt.Println("\nBurst complete")
}

func burstFrame(seq int) []byte {
	frame := make([]byte, 0, 12)
	frame = append(frame, 0xAA, 0x55)
	frame = binary.LittleEndian.AppendUint16(frame, uint16(seq))
	frame = binary.LittleEndian.AppendUint32(frame, uint32(time.Now().UnixMilli()))
	sample := math.Float32bits(float32(math.Sin(float64(seq) / 8)))
	frame = binary.LittleEndian.AppendUint32(frame, sample)
	return frame
}

// echo reads whatever arrives and writes it straight back, so interactive
// sends from the monitor get a reply.
func echo(cfg serial.PortConfig) {
	ctx, err := serial.OpenContext(cfg)
	if err != nil {
		log.Fatalf("Failed to open port: %v", err)
	}
	defer ctx.Close()

	fmt.Printf("Echoing on %s at %d baud\n", cfg.Device, cfg.BaudRate)
	fmt.Println("Press Ctrl+C to stop")

	buf := make([]byte, 1024)
	totalBytes := 0

	for {
		n, err := ctx.Port.Read(buf)
		if err != nil {
			log.Printf("Read error: %v", err)
			time.Sleep(100 * time.Millisecond)
			continue
		}
		if n == 0 {
			continue
		}

		totalBytes += n
		if _, err := ctx.Port.Write(buf[:n]); err != nil {
			log.Printf("Write error: %v", err)
			continue
		}
		fmt.Printf("[%s] Echoed %d bytes (total: %d)\n", time.Now().Format("15:04:05.000"), n, totalBytes)
	}
}
