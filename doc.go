/*
Package main provides a CLI tool for deploying a ZenML server into a
Kubernetes cluster.

Usage:

	zendeploy [command]

Available Commands:

	deploy      Deploy the ZenML server
	destroy     Tear down the ZenML server
	status      Show the state of the deployment
	render      Render the manifests the deploy would apply
	certs       Fetch the ingress TLS material

Examples:

	# Deploy with the default config file (zendeploy.yaml)
	zendeploy deploy

	# Deploy with an explicit config file
	zendeploy deploy -c production.toml

	# Write the ingress TLS material to ./certs
	zendeploy certs -o ./certs

The deploy command evaluates a small resource graph: the target namespace is
created first, the ingress hostname and the database connection are resolved,
the server Helm release is installed or upgraded with the resolved values,
and the TLS secret the chart produces is read back.
*/
package main
