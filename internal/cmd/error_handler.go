package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/groupdocs/assembly-cloud-go/internal/api"
	"github.com/groupdocs/assembly-cloud-go/internal/config"
)

// HandleError processes an error and returns a user-friendly message with suggestions
func HandleError(err error) string {
	if err == nil {
		return ""
	}

	var msg strings.Builder

	var (
		apiErr       *api.APIError
		authErr      *api.AuthError
		valErr       *api.ValidationError
		transportErr *api.TransportError
		decodeErr    *api.DeserializationError
	)

	switch {
	case errors.Is(err, config.ErrNotConfigured):
		msg.WriteString("Not authenticated.\n\n")
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Run: assembly auth login --app-sid SID --app-key KEY\n")
		msg.WriteString("  - Or export ASSEMBLY_APP_SID and ASSEMBLY_APP_KEY\n")

	case errors.As(err, &authErr):
		fmt.Fprintf(&msg, "Authentication failed: %s\n\n", authErr.Reason)
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Check the App SID and App Key: assembly auth status\n")
		msg.WriteString("  - Run: assembly auth login\n")
		msg.WriteString("  - Use --debug to see the token request\n")

	case errors.As(err, &apiErr):
		fmt.Fprintf(&msg, "API error (HTTP %d): %s\n\n", apiErr.StatusCode, apiErr.Message)
		msg.WriteString(suggestionsForStatusCode(apiErr.StatusCode))
		if apiErr.RequestID != "" {
			fmt.Fprintf(&msg, "\nRequest ID: %s\n", apiErr.RequestID)
		}

	case errors.As(err, &valErr):
		fmt.Fprintf(&msg, "Invalid request: %s\n", valErr.Error())

	case errors.As(err, &decodeErr):
		fmt.Fprintf(&msg, "Unexpected response: %s\n\n", decodeErr.Error())
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Check --base-url points at the Assembly API\n")
		msg.WriteString("  - Use --debug to see the response body\n")

	case errors.As(err, &transportErr) && strings.Contains(err.Error(), "no such host"):
		msg.WriteString("DNS resolution failed.\n\n")
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Check the base URL spelling: assembly auth status\n")
		msg.WriteString("  - Verify your DNS settings\n")

	case errors.As(err, &transportErr) && strings.Contains(err.Error(), "certificate"):
		msg.WriteString("TLS certificate error.\n\n")
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Verify the server's certificate\n")
		msg.WriteString("  - Ensure the base URL uses https:// correctly\n")

	case errors.As(err, &transportErr):
		fmt.Fprintf(&msg, "Request failed: %s\n\n", transportErr.Error())
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Check your network connection\n")
		msg.WriteString("  - Increase --timeout for large documents\n")

	default:
		fmt.Fprintf(&msg, "Error: %s\n", err.Error())
	}

	return msg.String()
}

func suggestionsForStatusCode(code int) string {
	var suggestions strings.Builder
	suggestions.WriteString("Suggestions:\n")

	switch {
	case code == 400:
		suggestions.WriteString("  - Check the template, data and save options\n")
		suggestions.WriteString("  - Use --debug to see the full request\n")

	case code == 401:
		suggestions.WriteString("  - The App SID or App Key was rejected\n")
		suggestions.WriteString("  - Run: assembly auth login\n")

	case code == 403:
		suggestions.WriteString("  - The application lacks access to this storage\n")
		suggestions.WriteString("  - Check the storage name and plan limits\n")

	case code == 404:
		suggestions.WriteString("  - The file or folder doesn't exist\n")
		suggestions.WriteString("  - List the folder: assembly folder list <path>\n")

	case code == 429:
		suggestions.WriteString("  - Too many requests\n")
		suggestions.WriteString("  - Lower --concurrency and retry\n")

	case code >= 500:
		suggestions.WriteString("  - Server error - not your fault\n")
		suggestions.WriteString("  - Wait and retry\n")

	default:
		suggestions.WriteString("  - Use --debug for more details\n")
	}

	return suggestions.String()
}
