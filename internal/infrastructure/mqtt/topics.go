package mqtt

import "strings"

// TopicPrefix is the root of every exporter topic.
const TopicPrefix = "integrationexporter"

// Topics builds exporter MQTT topics.
//
//	mqtt.Topics{}.Command("export_integrations")
//	// integrationexporter/command/export_integrations
type Topics struct{}

// Command returns the topic that triggers the named command.
func (Topics) Command(name string) string {
	return TopicPrefix + "/command/" + name
}

// AllCommands matches every command topic.
func (Topics) AllCommands() string {
	return TopicPrefix + "/command/+"
}

// ReportStatus carries the retained outcome of the most recent export.
func (Topics) ReportStatus() string {
	return TopicPrefix + "/report/status"
}

// SystemStatus carries the retained online/offline presence of the exporter.
func (Topics) SystemStatus() string {
	return TopicPrefix + "/system/status"
}

// CommandName extracts the command name from a command topic.
// It returns "" for any other topic.
func CommandName(topic string) string {
	name, ok := strings.CutPrefix(topic, TopicPrefix+"/command/")
	if !ok || name == "" || strings.Contains(name, "/") {
		return ""
	}
	return name
}
