package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"text/tabwriter"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "auth":
		handleAuth(args)
	case "org":
		handleOrg(args)
	case "browse":
		browseInternships(args)
	case "admin":
		handleAdmin(args)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func handleAuth(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: internhub auth <register|login|role|logout|who>")
		return
	}

	subCmd := args[0]
	switch subCmd {
	case "register":
		registerUser(args[1:])
	case "login":
		loginUser(args[1:])
	case "role":
		selectRole(args[1:])
	case "logout":
		logoutUser()
	case "who":
		whoAmI()
	default:
		fmt.Printf("unknown auth command: %s\n", subCmd)
	}
}

func handleOrg(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: internhub org <profile|listings>")
		return
	}

	subCmd := args[0]
	switch subCmd {
	case "profile":
		showOrgProfile(args[1:])
	case "listings":
		listOrgListings(args[1:])
	default:
		fmt.Printf("unknown org command: %s\n", subCmd)
	}
}

func handleAdmin(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: internhub admin <pending|approve|reject|users>")
		return
	}

	subCmd := args[0]
	switch subCmd {
	case "pending":
		listPendingOrgs(args[1:])
	case "approve":
		decideOrg(args[1:], "approve")
	case "reject":
		decideOrg(args[1:], "reject")
	case "users":
		listUsers(args[1:])
	default:
		fmt.Printf("unknown admin command: %s\n", subCmd)
	}
}

// Auth commands
func registerUser(args []string) {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	email := fs.String("email", "", "user email")
	password := fs.String("password", "", "password")

	fs.Parse(args)

	if *email == "" || *password == "" {
		fmt.Println("Error: email and password are required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]string{"email": *email, "password": *password}
	data, _ := json.Marshal(payload)
	resp, err := http.Post(getAPIURL()+"/auth/register", "application/json", bytes.NewReader(data))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode == 201 {
		fmt.Printf("✓ User registered: %s\n", *email)
		if token, ok := result["token"].(string); ok {
			saveToken(token)
		}
		fmt.Println("Next: internhub auth role -role <admin|organization|intern>")
	} else {
		fmt.Printf("✗ Registration failed: %v\n", result)
	}
}

func loginUser(args []string) {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "user email")
	password := fs.String("password", "", "password")

	fs.Parse(args)

	if *email == "" || *password == "" {
		fmt.Println("Error: email and password are required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]string{"email": *email, "password": *password}
	data, _ := json.Marshal(payload)
	resp, err := http.Post(getAPIURL()+"/auth/login", "application/json", bytes.NewReader(data))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode == 200 {
		if token, ok := result["token"].(string); ok {
			saveToken(token)
			fmt.Printf("✓ Logged in as: %s\n", *email)
		}
	} else {
		fmt.Printf("✗ Login failed: %v\n", result)
	}
}

func selectRole(args []string) {
	fs := flag.NewFlagSet("role", flag.ExitOnError)
	role := fs.String("role", "", "role: admin, organization, or intern")

	fs.Parse(args)

	if *role == "" {
		fmt.Println("Error: role is required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]string{"role": *role}
	data, _ := json.Marshal(payload)
	req, _ := http.NewRequest("POST", getAPIURL()+"/auth/role", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	addAuthHeader(req)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode == 201 {
		if token, ok := result["token"].(string); ok {
			saveToken(token)
		}
		fmt.Printf("✓ Role set: %s\n", *role)
		if next, ok := result["next"].(string); ok && next != "" {
			fmt.Printf("Next: %s\n", next)
		}
	} else {
		fmt.Printf("✗ Role selection failed: %v\n", result)
	}
}

func logoutUser() {
	os.Remove(tokenFile())
	fmt.Println("✓ Logged out")
}

func whoAmI() {
	req, _ := http.NewRequest("GET", getAPIURL()+"/auth/me", nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		fmt.Println("Not logged in")
		return
	}

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	fmt.Printf("✓ Logged in as: %v (role: %v)\n", result["email"], result["role"])
}

// Organization commands
func showOrgProfile(args []string) {
	_ = args
	req, _ := http.NewRequest("GET", getAPIURL()+"/organization/profile", nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var profile map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&profile)
	if resp.StatusCode != 200 {
		fmt.Printf("✗ Failed: %v\n", profile)
		return
	}

	fmt.Printf("Company:  %v\n", profile["CompanyName"])
	fmt.Printf("Status:   %v\n", profile["ApprovalStatus"])
	if reason, ok := profile["RejectionReason"].(string); ok && reason != "" {
		fmt.Printf("Reason:   %v\n", reason)
	}
}

func listOrgListings(args []string) {
	_ = args
	req, _ := http.NewRequest("GET", getAPIURL()+"/internships", nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var listings []map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&listings)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tDEADLINE")
	for _, l := range listings {
		fmt.Fprintf(w, "%v\t%v\t%v\t%v\n", l["ID"], l["Title"], l["Status"], l["ApplicationDeadline"])
	}
	w.Flush()
}

// Browse command
func browseInternships(args []string) {
	fs := flag.NewFlagSet("browse", flag.ExitOnError)
	skill := fs.String("skill", "", "filter by skill")
	location := fs.String("location", "", "filter by location")

	fs.Parse(args)

	url := getAPIURL() + "/browse/internships?skill=" + *skill + "&location=" + *location
	req, _ := http.NewRequest("GET", url, nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var listings []map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&listings)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tLOCATION\tWORK TYPE")
	for _, l := range listings {
		fmt.Fprintf(w, "%v\t%v\t%v\t%v\n", l["ID"], l["Title"], l["Location"], l["WorkType"])
	}
	w.Flush()
}

// Admin commands
func listPendingOrgs(args []string) {
	_ = args
	req, _ := http.NewRequest("GET", getAPIURL()+"/admin/organizations?status=pending", nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var orgs []map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&orgs)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCOMPANY\tSUBMITTED")
	for _, o := range orgs {
		fmt.Fprintf(w, "%v\t%v\t%v\n", o["ID"], o["CompanyName"], o["CreatedAt"])
	}
	w.Flush()
}

func decideOrg(args []string, decision string) {
	fs := flag.NewFlagSet(decision, flag.ExitOnError)
	id := fs.String("id", "", "organization profile id")
	reason := fs.String("reason", "", "rejection reason (required for reject)")

	fs.Parse(args)

	if *id == "" {
		fmt.Println("Error: id is required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]string{"decision": decision}
	if *reason != "" {
		payload["reason"] = *reason
	}
	data, _ := json.Marshal(payload)
	req, _ := http.NewRequest("POST", getAPIURL()+"/admin/organizations/"+*id+"/approval", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	addAuthHeader(req)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode == 200 {
		fmt.Printf("✓ Organization %sd\n", decision)
	} else {
		fmt.Printf("✗ Decision failed: %v\n", result)
	}
}

func listUsers(args []string) {
	_ = args
	req, _ := http.NewRequest("GET", getAPIURL()+"/admin/users", nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var users []map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&users)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tEMAIL\tCONFIRMED\tACTIVE")
	for _, u := range users {
		fmt.Fprintf(w, "%v\t%v\t%v\t%v\n", u["id"], u["email"], u["email_confirmed"], u["is_active"])
	}
	w.Flush()
}

// Helper functions
func getAPIURL() string {
	if url := os.Getenv("INTERNHUB_API"); url != "" {
		return url
	}
	return "http://localhost:8080/api"
}

func tokenFile() string {
	home, _ := os.UserHomeDir()
	return home + "/.internhub/token"
}

func saveToken(token string) error {
	home, _ := os.UserHomeDir()
	os.MkdirAll(home+"/.internhub", 0700)
	return os.WriteFile(tokenFile(), []byte(token), 0600)
}

func loadToken() string {
	data, _ := os.ReadFile(tokenFile())
	return string(data)
}

func addAuthHeader(req *http.Request) {
	token := loadToken()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func printUsage() {
	fmt.Print(`InternHub CLI

Usage:
  internhub <command> [options]

Commands:
  auth    Authentication (register, login, role, logout, who)
  org     Organization operations (profile, listings)
  browse  Browse active internships (intern role)
  admin   Admin operations (pending, approve, reject, users)
  help    Show this help message

Environment Variables:
  INTERNHUB_API    API endpoint (default: http://localhost:8080/api)

Examples:
  internhub auth register -email user@example.com -password pass1234
  internhub auth role -role organization
  internhub admin pending
  internhub admin reject -id <org-id> -reason "website unreachable"
`)
}
