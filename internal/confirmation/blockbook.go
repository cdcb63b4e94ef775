package confirmation

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// blockNotification is the "block" shape of a blockbook-style WS data
// frame, spec §6.3.
type blockNotification struct {
	Hash      string `json:"hash"`
	Height    uint32 `json:"height"`
	Timestamp int64  `json:"timestamp"`
	HasTime   bool   `json:"-"`
}

// statusNotification is the "subscription status" shape.
type statusNotification struct {
	Subscribed bool `json:"subscribed"`
}

// wireFrame is the outer shape every inbound frame from the
// block-notification provider carries.
type wireFrame struct {
	ID   string          `json:"id,omitempty"`
	Data json.RawMessage `json:"data"`
}

// subscribeRequest is the outbound subscribe command, spec §6.3.
type subscribeRequest struct {
	ID     string        `json:"id"`
	Method string        `json:"method"`
	Params []interface{} `json:"params"`
}

// blockbookClient owns a WebSocket connection to a block-notification
// provider plus the HTTP side-channel used to resolve a block's
// transaction id list.
type blockbookClient struct {
	wsURL      string
	httpHost   string
	apiKey     string
	httpClient *http.Client

	conn *websocket.Conn
}

func newBlockbookClient(wsURL, httpHost, apiKey string) *blockbookClient {
	return &blockbookClient{
		wsURL:      wsURL,
		httpHost:   httpHost,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// dial connects and sends the subscribeNewBlock command, per spec §6.3.
func (c *blockbookClient) dial() error {
	conn, _, err := websocket.DefaultDialer.Dial(c.wsURL, nil)
	if err != nil {
		return err
	}
	c.conn = conn

	req := subscribeRequest{ID: "1", Method: "subscribeNewBlock", Params: []interface{}{}}
	return conn.WriteJSON(req)
}

// readFrame blocks for the next inbound frame and classifies it.
func (c *blockbookClient) readFrame() (blk *blockNotification, status *statusNotification, err error) {
	_, raw, err := c.conn.ReadMessage()
	if err != nil {
		return nil, nil, err
	}

	var frame wireFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return nil, nil, fmt.Errorf("malformed blockbook frame: %w", err)
	}
	if len(frame.Data) == 0 {
		return nil, nil, nil
	}

	var probe map[string]interface{}
	if err := json.Unmarshal(frame.Data, &probe); err != nil {
		return nil, nil, fmt.Errorf("malformed blockbook data: %w", err)
	}

	if _, ok := probe["subscribed"]; ok {
		var s statusNotification
		if err := json.Unmarshal(frame.Data, &s); err != nil {
			return nil, nil, err
		}
		return nil, &s, nil
	}

	if _, ok := probe["hash"]; ok {
		if _, hasTxid := probe["txid"]; hasTxid {
			// a transaction notification, ignored by the core per §6.3
			return nil, nil, nil
		}
		var b blockNotification
		if err := json.Unmarshal(frame.Data, &b); err != nil {
			return nil, nil, err
		}
		if _, hasTS := probe["timestamp"]; hasTS {
			b.HasTime = true
		}
		return &b, nil, nil
	}

	return nil, nil, nil
}

func (c *blockbookClient) close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// blockTxIDs is the decoded shape of the HTTP block-fetch fallback.
type blockTxIDs struct {
	Hash   string `json:"hash"`
	Height uint32 `json:"height"`
	Time   int64  `json:"time"`
	Txs    []struct {
		TxID string `json:"txid"`
	} `json:"txs"`
}

// fetchBlockTxIDs retrieves the transaction id list for hash via the
// GET /api/v2/block/{hash} HTTP fallback, spec §6.3.
func (c *blockbookClient) fetchBlockTxIDs(hash string) ([]string, error) {
	url := fmt.Sprintf("https://%s/%s/api/v2/block/%s", c.httpHost, c.apiKey, hash)
	resp, err := c.httpClient.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("block fetch for %s returned status %d", hash, resp.StatusCode)
	}

	var body blockTxIDs
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}

	txids := make([]string, 0, len(body.Txs))
	for _, tx := range body.Txs {
		txids = append(txids, tx.TxID)
	}
	return txids, nil
}
