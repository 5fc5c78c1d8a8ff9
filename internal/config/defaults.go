package config

// Built-in policy seed lists. These mirror the tool roster the system ships
// with; operators extend them through the config files, never through the
// dispatcher.

var (
	defaultSafeCommands = []string{
		"ls", "cat", "head", "tail", "grep", "find", "which", "file",
		"echo", "pwd", "cd", "env", "date", "uptime", "uname", "id",
		"whoami", "ps", "df", "du", "free", "wc", "sort", "uniq",
		"ip", "ifconfig", "ss", "netstat", "arp", "ping", "tree",
		"git", "history",
		// Recon tools are well understood here; they route to sessions
		// without a confirmation stop.
		"nmap", "masscan", "nikto", "dirb", "gobuster",
		"tcpdump", "tshark", "wireshark", "airodump-ng",
	}

	defaultDangerousCommands = []string{
		"rm", "dd", "mkfs", "mkfs.ext4", "fdisk", "parted", "shred",
		"mv", "chmod", "chown", "kill", "killall", "pkill",
		"shutdown", "reboot", "halt", "poweroff", "init",
		"iptables", "ufw", "userdel", "usermod", "passwd",
		// Offensive tooling that mutates targets or credentials.
		"john", "hashcat", "hydra", "sqlmap", "msfconsole",
		"aircrack-ng", "aireplay-ng", "wpscan", "medusa",
	}

	defaultBackgroundableCommands = []string{
		"nmap", "masscan", "nikto", "dirb", "gobuster", "sqlmap",
		"john", "hashcat", "hydra", "medusa", "wpscan",
		"aircrack-ng", "airodump-ng", "aireplay-ng",
		"tcpdump", "tshark", "wireshark", "msfconsole",
	}
)

// DefaultConfig returns the built-in default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			TimeoutSecs: 300,
			Shell:       true,
			LogLevel:    "info",
		},
		Policy: PolicyConfig{
			Safe:           defaultSafeCommands,
			Dangerous:      defaultDangerousCommands,
			Backgroundable: defaultBackgroundableCommands,
		},
		Journal: JournalConfig{
			Path: "",
		},
		History: HistoryConfig{
			DatabasePath:  "",
			MirrorEnabled: true,
		},
		Brain: BrainConfig{
			Endpoint:    "http://localhost:5000",
			TimeoutSecs: 30,
			Context:     "",
		},
	}
}
