package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

var (
	rpcURL     string
	rpcTimeout time.Duration
)

// rpcCmd represents the rpc client command
var rpcCmd = &cobra.Command{
	Use:   "rpc <method> [json-params]",
	Short: "Call a JSON-RPC method on a running node",
	Long: `Call a JSON-RPC method on a running node and print the result.

Example:
  thermd rpc balance '{"account":"0x00000000000000000000000000000000000000a1"}'`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var params json.RawMessage
		if len(args) > 1 {
			params = json.RawMessage(args[1])
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), rpcTimeout)
		defer cancel()

		result, err := callRPC(ctx, rpcURL, args[0], params)
		if err != nil {
			return err
		}
		if err := printJSON(cmd.OutOrStdout(), result); err != nil {
			return err
		}
		if status, _ := result["status"].(string); status == "error" {
			return fmt.Errorf("RPC error [%v]: %v", result["error"], result["error_message"])
		}
		return nil
	},
}

func init() {
	rpcCmd.Flags().StringVar(&rpcURL, "url", "http://127.0.0.1:8545", "JSON-RPC endpoint")
	rpcCmd.Flags().DurationVar(&rpcTimeout, "timeout", 30*time.Second, "request timeout")
	rootCmd.AddCommand(rpcCmd)
}

// callRPC posts a single-method envelope and returns the result object.
func callRPC(ctx context.Context, url, method string, params json.RawMessage) (map[string]interface{}, error) {
	if len(params) == 0 {
		params = json.RawMessage("{}")
	}
	if !json.Valid(params) {
		return nil, fmt.Errorf("params are not valid JSON: %s", params)
	}
	body, err := json.Marshal(struct {
		Method string            `json:"method"`
		Params []json.RawMessage `json:"params"`
	}{method, []json.RawMessage{params}})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var envelope struct {
		Result map[string]interface{} `json:"result"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil || envelope.Result == nil {
		return nil, fmt.Errorf("unexpected response (%s): %s", resp.Status, bytes.TrimSpace(data))
	}
	return envelope.Result, nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
