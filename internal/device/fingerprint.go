package device

import (
    "crypto/sha256"
    "encoding/hex"
    "fmt"
    "os"
    "runtime"
    "strings"

    "github.com/denisbrodbeck/machineid"
    "github.com/jaypipes/ghw"
)

// appID scopes the protected machine ID so the raw OS identifier never
// leaves the host.
const appID = "payloadcrypt"

// DeviceInfo identifies the host a payload was requested from
type DeviceInfo struct {
    DeviceID     string            // Protected machine identifier, sent as udid
    HardwareHash string            // Hash over stable hardware facts
    Platform     string            // GOOS/GOARCH
    Fingerprint  map[string]string // Additional details, for display only
}

type hardware struct {
    cpuID       int
    cpuModel    string
    cpuVendor   string
    totalMemory int64
}

// Fingerprinter generates device-specific information
type Fingerprinter struct {
    machineID func() (string, error)
    hardware  func() (hardware, error)
    hostname  func() (string, error)
}

// New creates a Fingerprinter backed by machineid and ghw
func New() *Fingerprinter {
    return &Fingerprinter{
        machineID: func() (string, error) { return machineid.ProtectedID(appID) },
        hardware:  probeHardware,
        hostname:  os.Hostname,
    }
}

func probeHardware() (hardware, error) {
    cpu, err := ghw.CPU()
    if err != nil {
        return hardware{}, fmt.Errorf("failed to get CPU info: %w", err)
    }
    memory, err := ghw.Memory()
    if err != nil {
        return hardware{}, fmt.Errorf("failed to get memory info: %w", err)
    }

    hw := hardware{totalMemory: memory.TotalPhysicalBytes}
    if len(cpu.Processors) > 0 {
        hw.cpuID = cpu.Processors[0].ID
        hw.cpuModel = cpu.Processors[0].Model
        hw.cpuVendor = cpu.Processors[0].Vendor
    }
    return hw, nil
}

// GetDeviceInfo collects hardware-specific information
func (f *Fingerprinter) GetDeviceInfo() (DeviceInfo, error) {
    machineID, err := f.machineID()
    if err != nil {
        return DeviceInfo{}, fmt.Errorf("failed to get machine ID: %w", err)
    }

    hw, err := f.hardware()
    if err != nil {
        return DeviceInfo{}, err
    }

    hostname, err := f.hostname()
    if err != nil {
        hostname = "unknown"
    }

    fingerprints := map[string]string{
        "cpu_model":    hw.cpuModel,
        "cpu_vendor":   hw.cpuVendor,
        "total_memory": fmt.Sprintf("%d", hw.totalMemory),
        "os":           runtime.GOOS,
        "arch":         runtime.GOARCH,
        "hostname":     hostname,
    }

    hashInput := []string{
        machineID,
        fmt.Sprintf("%d", hw.cpuID),
        fmt.Sprintf("%d", hw.totalMemory),
        runtime.GOOS,
        runtime.GOARCH,
    }

    return DeviceInfo{
        DeviceID:     machineID,
        HardwareHash: generateHash(strings.Join(hashInput, "|")),
        Platform:     fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
        Fingerprint:  fingerprints,
    }, nil
}

// ValidateDevice checks if the current device matches the stored device info
func (f *Fingerprinter) ValidateDevice(storedInfo DeviceInfo) (bool, error) {
    currentInfo, err := f.GetDeviceInfo()
    if err != nil {
        return false, fmt.Errorf("failed to get current device info: %w", err)
    }

    if currentInfo.DeviceID != storedInfo.DeviceID ||
        currentInfo.HardwareHash != storedInfo.HardwareHash {
        return false, nil
    }

    if currentInfo.Fingerprint["cpu_model"] != storedInfo.Fingerprint["cpu_model"] ||
        currentInfo.Fingerprint["total_memory"] != storedInfo.Fingerprint["total_memory"] {
        return false, nil
    }

    return true, nil
}

func generateHash(input string) string {
    hash := sha256.New()
    hash.Write([]byte(input))
    return hex.EncodeToString(hash.Sum(nil))
}
