package grib

// Namespace scopes key iteration to a related subset of a message's keys.
type Namespace string

// Recognized namespaces. NamespaceAll selects every key.
const (
	NamespaceAll        Namespace = ""
	NamespaceLS         Namespace = "ls"
	NamespaceParameter  Namespace = "parameter"
	NamespaceStatistics Namespace = "statistics"
	NamespaceTime       Namespace = "time"
	NamespaceGeography  Namespace = "geography"
	NamespaceVertical   Namespace = "vertical"
	NamespaceMars       Namespace = "mars"
)
