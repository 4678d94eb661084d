// Command ash-client is a demonstration walkthrough of one ASH
// conversation: it plays both parties against a single in-memory pad,
// the way a real ceremony would split that pad across two devices over
// a physically transferred QR stream, then exchanges one message
// through a relay and tears the conversation down with a burn.
//
// This is a demo harness, not the ceremony transport itself: the actual
// QR scan/physical-pad-transfer step is out of scope for a CLI and is
// simulated here by generating the pad bytes once and handing both
// "sides" a copy, matching how the original ceremony walkthrough
// describes the protocol without performing the camera/QR I/O itself.
package main

import (
	"bytes"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/ashmsg/ash/ceremony"
	"github.com/ashmsg/ash/mac"
	"github.com/ashmsg/ash/message"
	"github.com/ashmsg/ash/pad"
	"github.com/ashmsg/ash/tokens"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	relayURL := flag.String("relay", "http://127.0.0.1:8080", "ASH relay base URL")
	padSizeKB := flag.Int("pad-kb", 32, "pad size in KiB (32, 64, 256, 512, or 1024)")
	text := flag.String("message", "hello from ash-client", "plaintext to send")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	fmt.Printf("=== ASH Client %s ===\n", Version)

	padBytes := make([]byte, *padSizeKB*1024)
	if _, err := rand.Read(padBytes); err != nil {
		fatal(logger, "generate pad", err)
	}

	meta := ceremony.NewMetadata(*relayURL)
	fmt.Printf("Ceremony metadata: version=%d relay=%s ttl=%ds\n", meta.Version, meta.RelayURL, meta.TTLSeconds)

	initiatorPad, err := pad.New(padBytes, pad.Initiator)
	if err != nil {
		fatal(logger, "wrap initiator pad", err)
	}
	responderPad, err := pad.New(padBytes, pad.Responder)
	if err != nil {
		fatal(logger, "wrap responder pad", err)
	}

	conversationID, err := tokens.ConversationID(padBytes)
	if err != nil {
		fatal(logger, "derive conversation id", err)
	}
	authToken, err := tokens.AuthToken(padBytes)
	if err != nil {
		fatal(logger, "derive auth token", err)
	}
	burnToken, err := tokens.BurnToken(padBytes)
	if err != nil {
		fatal(logger, "derive burn token", err)
	}
	fmt.Printf("Conversation ID: %s\n", conversationID)

	client := &relayClient{base: *relayURL, http: &http.Client{Timeout: 10 * time.Second}}

	if err := client.createConversation(conversationID, authToken, burnToken); err != nil {
		fatal(logger, "register conversation", err)
	}
	fmt.Println("Registered conversation with relay.")

	authKeyBytes, err := initiatorPad.Consume(mac.KeySize)
	if err != nil {
		fatal(logger, "consume auth key", err)
	}
	plaintext := []byte(*text)
	otpKey, err := initiatorPad.Consume(len(plaintext))
	if err != nil {
		fatal(logger, "consume otp key", err)
	}
	authKey := mac.ParseAuthKey(authKeyBytes)

	wire, err := message.Seal(message.TypeText, plaintext, otpKey, authKey)
	if err != nil {
		fatal(logger, "seal message", err)
	}
	fmt.Printf("Sealed %d bytes of plaintext into a %d-byte frame.\n", len(plaintext), len(wire))

	if err := client.postMessage(conversationID, authToken, wire); err != nil {
		fatal(logger, "post message", err)
	}
	fmt.Println("Delivered ciphertext to relay.")

	// Simulate an app restart: persist the initiator pad's state to what
	// would be local storage, then reconstruct a fresh Pad value from
	// exactly that persisted state instead of continuing to use the
	// in-memory one, the way a real client resumes a conversation after
	// its process restarts mid-pad.
	persistedBytes, consumedFront, consumedBack := initiatorPad.SerializeState()
	initiatorPad, err = pad.FromBytesWithState(persistedBytes, pad.Initiator, consumedFront, consumedBack)
	if err != nil {
		fatal(logger, "restore persisted pad state", err)
	}
	fmt.Printf("Restored initiator pad after simulated restart (consumed_front=%d, consumed_back=%d).\n", consumedFront, consumedBack)

	blobs, err := client.getMessages(conversationID, authToken)
	if err != nil {
		fatal(logger, "fetch messages", err)
	}
	fmt.Printf("Relay reports %d queued blob(s).\n", len(blobs))

	for _, blob := range blobs {
		decodedWire, err := base64.StdEncoding.DecodeString(blob.Ciphertext)
		if err != nil {
			fatal(logger, "decode relay ciphertext", err)
		}
		authKeyBytes, err := responderPad.DerivePeerKey(0, mac.KeySize)
		if err != nil {
			fatal(logger, "derive peer auth key", err)
		}
		otpKeyBytes, err := responderPad.DerivePeerKey(mac.KeySize, len(plaintext))
		if err != nil {
			fatal(logger, "derive peer otp key", err)
		}
		typ, out, err := message.Open(decodedWire, otpKeyBytes, mac.ParseAuthKey(authKeyBytes))
		if err != nil {
			fatal(logger, "open message", err)
		}
		fmt.Printf("Decrypted message (type=%d): %s\n", typ, out)
	}

	if err := client.burn(conversationID, burnToken); err != nil {
		fatal(logger, "burn conversation", err)
	}
	fmt.Println("Conversation burned.")

	initiatorPad.Burn()
	responderPad.Burn()
}

func fatal(logger *slog.Logger, action string, err error) {
	logger.Error(action+" failed", "error", err)
	os.Exit(1)
}

type relayClient struct {
	base string
	http *http.Client
}

func (c *relayClient) createConversation(conversationID, authToken, burnToken string) error {
	body, _ := json.Marshal(map[string]string{
		"conversation_id": conversationID,
		"auth_token_hash": hashToken(authToken),
		"burn_token_hash": hashToken(burnToken),
	})
	resp, err := c.http.Post(c.base+"/v1/conversations", "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}

func (c *relayClient) postMessage(conversationID, authToken string, wire []byte) error {
	body, _ := json.Marshal(map[string]string{
		"conversation_id": conversationID,
		"ciphertext":      base64.StdEncoding.EncodeToString(wire),
	})
	req, err := http.NewRequest(http.MethodPost, c.base+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+authToken)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}

type relayBlob struct {
	Ciphertext string `json:"ciphertext"`
}

func (c *relayClient) getMessages(conversationID, authToken string) ([]relayBlob, error) {
	req, err := http.NewRequest(http.MethodGet, c.base+"/v1/messages?conversation_id="+conversationID, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+authToken)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	var out struct {
		Messages []relayBlob `json:"messages"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return out.Messages, nil
}

func (c *relayClient) burn(conversationID, burnToken string) error {
	body, _ := json.Marshal(map[string]string{"conversation_id": conversationID})
	req, err := http.NewRequest(http.MethodPost, c.base+"/v1/burn", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+burnToken)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}

// hashToken mirrors the relay's own token hashing (SHA-256 hex): the
// relay stores only hashes, never the bearer tokens themselves, so the
// client must hash before registering.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
