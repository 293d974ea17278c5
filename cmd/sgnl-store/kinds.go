package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gwillem/signal-store/internal/store"
)

// kindAliases maps the short names accepted on the command line to
// namespaces. Namespace names themselves are accepted too.
var kindAliases = map[string]string{
	"identity":      store.NamespaceIdentityKey,
	"identities":    store.NamespaceIdentityKey,
	"session":       store.NamespaceSession,
	"sessions":      store.NamespaceSession,
	"prekey":        store.NamespacePreKey,
	"prekeys":       store.NamespacePreKey,
	"signed-prekey": store.NamespaceSignedPreKey,
	"signedprekey":  store.NamespaceSignedPreKey,
	"unprocessed":   store.NamespaceUnprocessed,
	"queue":         store.NamespaceUnprocessed,
	"group":         store.NamespaceGroups,
	"groups":        store.NamespaceGroups,
	"config":        store.NamespaceConfiguration,
	"configuration": store.NamespaceConfiguration,
}

func resolveKind(kind string) (string, error) {
	for _, ns := range store.Namespaces {
		if kind == ns {
			return ns, nil
		}
	}
	if ns, ok := kindAliases[strings.ToLower(kind)]; ok {
		return ns, nil
	}
	names := make([]string, 0, len(kindAliases))
	for name := range kindAliases {
		names = append(names, name)
	}
	sort.Strings(names)
	return "", fmt.Errorf("unknown kind %q (one of %s)", kind, strings.Join(names, ", "))
}
