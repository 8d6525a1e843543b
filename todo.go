/*
	Project: Masomo Admin - academics back-office (classrooms, courses, groups & subjects)
*/
package masomo

/*
TODO: masomoctl: `get --watch` on top of WatchGet
TODO: courses reference subjects & groups without FKs: deleting a subject leaves its courses dangling
TODO: client: CredentialsProvider refreshing tokens issued by `admin token -ttl`
*/
