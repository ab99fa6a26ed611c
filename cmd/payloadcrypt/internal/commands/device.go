package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"payloadcrypt/internal/device"
)

func InitDeviceCommand(rootCmd *cobra.Command) {
	deviceCmd := &cobra.Command{
		Use:   "device",
		Short: "Print this machine's fingerprint, or check it against a saved one",
		Args:  cobra.NoArgs,
		RunE:  runDevice,
	}
	deviceCmd.Flags().String("verify", "", "JSON file with a previously printed fingerprint")
	rootCmd.AddCommand(deviceCmd)
}

func runDevice(cmd *cobra.Command, _ []string) error {
	verify, _ := cmd.Flags().GetString("verify")
	if verify == "" {
		info, err := fingerprint()
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}

	raw, err := os.ReadFile(filepath.Clean(verify))
	if err != nil {
		return err
	}
	var stored device.DeviceInfo
	if err := json.Unmarshal(raw, &stored); err != nil {
		return fmt.Errorf("failed to parse %s: %w", verify, err)
	}

	ok, err := device.New().ValidateDevice(stored)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("device does not match %s", verify)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), "device matches")
	return err
}
